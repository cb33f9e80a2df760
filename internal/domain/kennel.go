package domain

// Kennel groups the stays booked into one physical unit. Capacity is the
// number of simultaneous occupants the unit holds, i.e. the number of
// timeline lanes it renders with.
type Kennel struct {
	ID       string
	Name     string
	Code     string
	Capacity int
	Stays    []Stay
}
