package relay

// respMessage is the wire shape of one pending message.
type respMessage struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
}
