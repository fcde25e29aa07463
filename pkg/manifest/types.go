package manifest

// EndpointKind tells how an endpoint is reached.
type EndpointKind string

const (
	EndpointRemote EndpointKind = "remote"
	EndpointLocal  EndpointKind = "local"
)

// Downstream credential modes for remote endpoints.
const (
	DownAuthNone         = "none"
	DownAuthStaticBearer = "static-bearer"
	DownAuthForwardToken = "forward-token"
)

const DefaultMount = "/api"
