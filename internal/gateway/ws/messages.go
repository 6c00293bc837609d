package ws

import "encoding/json"

// Message types with fixed meaning. Any other type is looked up in the
// routing table.
const (
	TypeAuth          = "auth"
	TypeAuthResponse  = "auth_response"
	TypeFetchData     = "fetch_data"
	TypeFetchResponse = "fetch_response"
	TypePing          = "ping"
	TypePong          = "pong"
	TypeError         = "error"
	TypeUserStatus    = "user_status"

	responseSuffix = "_response"
)

// Envelope is the shape of every inbound message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type authData struct {
	Token string `json:"token"`
}

type fetchData struct {
	Type   string          `json:"type"`
	UserID json.RawMessage `json:"userId,omitempty"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// resultMessage is used for auth_response, fetch_response and every
// routed <type>_response.
type resultMessage struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	User    any    `json:"user,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type fetchResult struct {
	Type   string `json:"type"`
	Result any    `json:"result"`
}

type pongMessage struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

type userStatusMessage struct {
	Type       string `json:"type"`
	UserID     int64  `json:"userId"`
	IsOnline   bool   `json:"isOnline"`
	LastOnline string `json:"lastOnline,omitempty"`
}

type onlineBody struct {
	IsOnline bool `json:"isOnline"`
}
