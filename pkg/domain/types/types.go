package types

// Version is the application version. Overwritten at build time via
// -ldflags "-X github.com/collie-dev/collie/pkg/domain/types.Version=..."
var Version = "dev"

// ServiceName is used in health responses and log attributes
const ServiceName = "collie"
