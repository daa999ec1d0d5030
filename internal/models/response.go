package models

// APIResponse is the envelope of the local dashboard HTTP surface.
type APIResponse struct {
	Status bool        `json:"status"`
	Msg    string      `json:"msg"`
	Obj    interface{} `json:"obj"`
}
