package models

type Axis string

const (
	AxisTechnicalDepth             Axis = "technical_depth"
	AxisLearningGrowth             Axis = "learning_growth"
	AxisBusinessAwareness          Axis = "business_awareness"
	AxisAutonomyOwnership          Axis = "autonomy_ownership"
	AxisCollaborationCommunication Axis = "collaboration_communication"
)

// Axes lists every axis in display order.
var Axes = []Axis{
	AxisTechnicalDepth,
	AxisLearningGrowth,
	AxisBusinessAwareness,
	AxisAutonomyOwnership,
	AxisCollaborationCommunication,
}

var axisLabels = map[Axis]string{
	AxisTechnicalDepth:             "Technical Depth",
	AxisLearningGrowth:             "Learning & Growth",
	AxisBusinessAwareness:          "Business/Product Awareness",
	AxisAutonomyOwnership:          "Autonomy & Ownership",
	AxisCollaborationCommunication: "Collaboration & Communication",
}

func (a Axis) Valid() bool {
	_, ok := axisLabels[a]
	return ok
}

func (a Axis) Label() string {
	if label, ok := axisLabels[a]; ok {
		return label
	}
	return string(a)
}

const (
	MinScore = 1
	MaxScore = 5
)

type HireSignal string

const (
	HireSignalStrongNo  HireSignal = "strong_no"
	HireSignalNo        HireSignal = "no"
	HireSignalNeutral   HireSignal = "neutral"
	HireSignalYes       HireSignal = "yes"
	HireSignalStrongYes HireSignal = "strong_yes"
)

// HireSignals is ordered from most negative to most positive.
var HireSignals = []HireSignal{
	HireSignalStrongNo,
	HireSignalNo,
	HireSignalNeutral,
	HireSignalYes,
	HireSignalStrongYes,
}

var hireSignalLabels = map[HireSignal]string{
	HireSignalStrongNo:  "Strong No",
	HireSignalNo:        "No",
	HireSignalNeutral:   "Neutral",
	HireSignalYes:       "Yes",
	HireSignalStrongYes: "Strong Yes",
}

func (s HireSignal) Valid() bool {
	_, ok := hireSignalLabels[s]
	return ok
}

func (s HireSignal) Label() string {
	if label, ok := hireSignalLabels[s]; ok {
		return label
	}
	return string(s)
}

// Rank is 1 for strong_no through 5 for strong_yes, 0 when invalid.
func (s HireSignal) Rank() int {
	for i, v := range HireSignals {
		if v == s {
			return i + 1
		}
	}
	return 0
}

type InterviewType string

const (
	InterviewTypeTechnical    InterviewType = "technical"
	InterviewTypeSystemDesign InterviewType = "system_design"
	InterviewTypeCulture      InterviewType = "culture"
	InterviewTypeManager      InterviewType = "manager"
	InterviewTypeFounder      InterviewType = "founder"
	InterviewTypeOther        InterviewType = "other"
)

var InterviewTypes = []InterviewType{
	InterviewTypeTechnical,
	InterviewTypeSystemDesign,
	InterviewTypeCulture,
	InterviewTypeManager,
	InterviewTypeFounder,
	InterviewTypeOther,
}

var interviewTypeLabels = map[InterviewType]string{
	InterviewTypeTechnical:    "Technical",
	InterviewTypeSystemDesign: "System Design",
	InterviewTypeCulture:      "Culture",
	InterviewTypeManager:      "Manager",
	InterviewTypeFounder:      "Founder",
	InterviewTypeOther:        "Other",
}

func (t InterviewType) Valid() bool {
	_, ok := interviewTypeLabels[t]
	return ok
}

func (t InterviewType) Label() string {
	if label, ok := interviewTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// EmptyAxisNotes returns a notes map with every axis set to "".
func EmptyAxisNotes() map[Axis]string {
	notes := make(map[Axis]string, len(Axes))
	for _, axis := range Axes {
		notes[axis] = ""
	}
	return notes
}
