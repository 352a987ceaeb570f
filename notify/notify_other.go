//go:build !linux && !windows

package notify

const platformBackend = BackendBeeep

func newPlatformService(config Config) (Service, error) {
	return newBeeepService(config), nil
}
