package domain

type (
	RoomID string
	// Address designates exactly one connection for direct signaling.
	Address string
)
