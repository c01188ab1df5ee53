package entities

type BallotStatus string

const (
	BallotOpen   BallotStatus = "OPEN"
	BallotClosed BallotStatus = "CLOSED"
)

// Ballot is one question put to the assembly. Order is assigned
// sequentially per election at creation time.
type Ballot struct {
	ID         int64
	ElectionID int64
	Title      string
	Order      int
	Status     BallotStatus
}

type BallotOption struct {
	ID       int64
	BallotID int64
	Text     string
}
