package docs

// swagger:response
type Error struct {
	// The error message
	//in: body
	Message string
}

// swagger:response Stream
type _ struct {
	// Server-sent events, one per saved or deleted remote cluster
	// in: body
	Body string
}
