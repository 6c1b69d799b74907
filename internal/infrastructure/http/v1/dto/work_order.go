package dto

// TransitionRequest carries the optional pause reason.
type TransitionRequest struct {
	Reason string `json:"reason"`
}
