package serviceiface

// Service is the lifecycle contract the app manager drives. Start must not
// block; long-running work goes in a goroutine.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
