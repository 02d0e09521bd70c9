package dto

type AutosaveSessionMessage struct {
	SessionId string `json:"session_id"`
}
