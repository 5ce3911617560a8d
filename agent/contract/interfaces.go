package contract

import "context"

type Router interface {
	Route(ctx context.Context, req RouteRequest) (Decision, error)
}

type Specialist interface {
	Handle(ctx context.Context, req SpecialistRequest) (StructuredResult, error)
}

type Registry interface {
	Router() Router
	Specialist(name AgentName) (Specialist, bool)
}

type CapabilityInvoker interface {
	Invoke(name string, args map[string]any) (any, error)
}
