package assist

// StatusKind classifies the outcome of a repair for display.
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusInfo    StatusKind = "info"
	StatusError   StatusKind = "error"
)

// Status is the message shown next to the editor after a repair.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}

const (
	repairInfoMessage  = "No syntax errors found or code automatically corrected."
	repairErrorMessage = "Failed to repair syntax. Please check the code manually."
)

// RepairStatus classifies the result of a Repair call. A repair of valid
// input (no explanation) is informational, never an error.
func RepairStatus(out *RepairOutput, err error) Status {
	switch {
	case err != nil || out == nil:
		return Status{Kind: StatusError, Message: repairErrorMessage}
	case out.Explanation != "":
		return Status{Kind: StatusSuccess, Message: "Syntax Repaired: " + out.Explanation}
	default:
		return Status{Kind: StatusInfo, Message: repairInfoMessage}
	}
}
