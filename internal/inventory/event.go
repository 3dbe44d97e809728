package inventory

import "context"

// Event actions
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event entities
const (
	EntityProduct  = "product"
	EntityCategory = "category"
)

// Event describes one committed inventory mutation.
type Event struct {
	Action   string
	Entity   string
	ID       int64
	Name     string
	Operator string
	IP       string
}

// Message is the user-facing success notification for the event.
func (e Event) Message() string {
	var verb string
	switch e.Action {
	case ActionCreate:
		verb = "added"
	case ActionUpdate:
		verb = "updated"
	case ActionDelete:
		verb = "deleted"
	default:
		verb = e.Action
	}
	if e.Entity == EntityCategory {
		return "Category \"" + e.Name + "\" " + verb + " successfully!"
	}
	return "Product \"" + e.Name + "\" " + verb + " successfully!"
}

// Publisher receives committed mutations.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Actor identifies who performs a mutation.
type Actor struct {
	Name string
	IP   string
}

type actorKey struct{}

// WithActor attaches the acting operator to ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the operator attached to ctx, if any.
func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}
