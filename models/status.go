package models

// Order status values. Orders enter the pipeline at StatusPending and move
// forward through production stages; StatusRejected is a terminal side
// branch out of StatusPending.
const (
	StatusPending       = "pending"
	StatusApproved      = "approved"
	StatusRejected      = "rejected"
	StatusMaterialPrep  = "material_prep"
	StatusFabrication   = "fabrication"
	StatusPowderCoating = "powder_coating"
	StatusQualityCheck  = "quality_check"
	StatusPackaging     = "packaging"
	StatusDelivered     = "delivered"
	StatusCompleted     = "completed"
)

// ValidStatuses is the fixed set of order states, in pipeline order
// (rejected listed after its branch point, matching the original enum).
var ValidStatuses = []string{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusMaterialPrep,
	StatusFabrication,
	StatusPowderCoating,
	StatusQualityCheck,
	StatusPackaging,
	StatusDelivered,
	StatusCompleted,
}

// IsValidStatus reports whether s is a member of the fixed state set.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// statusStep maps each status to its position in the 8-step progress
// checklist shown to customers. rejected stays on step 1.
var statusStep = map[string]int{
	StatusPending:       1,
	StatusRejected:      1,
	StatusApproved:      2,
	StatusMaterialPrep:  3,
	StatusFabrication:   4,
	StatusPowderCoating: 5,
	StatusQualityCheck:  6,
	StatusPackaging:     7,
	StatusDelivered:     8,
	StatusCompleted:     8,
}

// progressStepNames are the fixed checklist labels, index 0 = step 1.
var progressStepNames = []string{
	"Order Received",
	"Approved",
	"Material Prep",
	"Fabrication",
	"Powder Coating",
	"Quality Check",
	"Packaging",
	"Delivered",
}

// ProgressStep is one entry of the customer-facing production checklist.
type ProgressStep struct {
	Step      int    `json:"step"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Progress is the derived production-progress view for an order.
type Progress struct {
	CurrentStep int            `json:"currentStep"`
	Steps       []ProgressStep `json:"steps"`
}

// ProgressFor derives the 8-step progress view from a status. Step n is
// complete when the status sits at or beyond the state that step
// represents; step 1 (Order Received) is always complete. A rejected order
// stays on step 1 with nothing beyond it completed.
func ProgressFor(status string) Progress {
	current := statusStep[status]
	steps := make([]ProgressStep, len(progressStepNames))
	for i, name := range progressStepNames {
		step := i + 1
		completed := step <= current
		if status == StatusRejected && step > 1 {
			completed = false
		}
		steps[i] = ProgressStep{Step: step, Name: name, Completed: completed}
	}
	return Progress{CurrentStep: current, Steps: steps}
}

// forwardNext encodes the strict pipeline: each state maps to the set of
// states reachable going forward. Used only when strict transitions are
// enabled; the default behavior accepts any member of the state set.
var forwardNext = map[string]map[string]bool{
	StatusPending:       {StatusApproved: true, StatusRejected: true},
	StatusApproved:      {StatusMaterialPrep: true},
	StatusMaterialPrep:  {StatusFabrication: true},
	StatusFabrication:   {StatusPowderCoating: true},
	StatusPowderCoating: {StatusQualityCheck: true},
	StatusQualityCheck:  {StatusPackaging: true},
	StatusPackaging:     {StatusDelivered: true},
	StatusDelivered:     {StatusCompleted: true},
	StatusRejected:      {},
	StatusCompleted:     {},
}

// CanTransitionForward reports whether from -> to is a legal forward move
// along the pipeline.
func CanTransitionForward(from, to string) bool {
	return forwardNext[from][to]
}
