package request

// CreatePlayerRequest is the request body for creating a player
type CreatePlayerRequest struct {
	DisplayName string `json:"display_name"`
}

// JoinQueueRequest is the request body for joining the matchmaking queue
type JoinQueueRequest struct {
	Ranked bool `json:"ranked"`
}

// SubmitSolutionRequest is the request body for submitting a solution
type SubmitSolutionRequest struct {
	Text string `json:"text"`
}

// ReportProgressRequest is the request body for reporting solve progress
type ReportProgressRequest struct {
	Progress int `json:"progress"`
}
