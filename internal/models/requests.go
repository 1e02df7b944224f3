package models

type KickRequest struct {
	Limit int `json:"limit" example:"20" description:"Maximum number of pending events to contact"`
}

type RedirectRequest struct {
	ContactID string `json:"contact_id" example:"c-017"`
}

// InboundMessage carries one webhook delivery from the gateway. Interactive
// replies arrive as ids (ListReplyID / ButtonID), shared contact cards as
// ContactName/ContactPhone, everything else as free text in Body.
type InboundMessage struct {
	From         string `json:"from"`
	Body         string `json:"body"`
	ProfileName  string `json:"profile_name"`
	ListReplyID  string `json:"list_reply_id"`
	ButtonID     string `json:"button_id"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}
