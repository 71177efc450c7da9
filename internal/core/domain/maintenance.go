package domain

// Repair task directions, as shown on the maintenance hub tabs.
const (
	RepairIncoming = "incoming" // work requested from the current artisan
	RepairOutgoing = "outgoing" // items the current user sent out for repair
)

// Repair task statuses in lifecycle order.
const (
	RepairPending    = "Pending"
	RepairInProgress = "In Progress"
	RepairCompleted  = "Completed"
)

// RepairTask tracks one item moving through the maintenance lifecycle.
type RepairTask struct {
	ID        int
	Direction string
	Item      string
	Client    string // counterpart for incoming tasks
	Artisan   string // counterpart for outgoing items
	Status    string
	Date      string
}
