package env

import (
	"os"
	"sync"

	"github.com/google/uuid"
)

var (
	instanceOnce sync.Once
	instanceID   string
)

// PodName example: k8ssta-goauction-api-6868d88fbd-bz8zv
func PodName() string {
	return os.Getenv("PODNAME")
}

// EnvName example: k8ssta
func EnvName() string {
	return os.Getenv("ENV_NAME")
}

// AppName example: scheduler
func AppName() string {
	return os.Getenv("APP_NAME")
}

// InstanceID identifies this process among replicas. It is the pod name when
// running in k8s and a random id otherwise, stable for the process lifetime.
func InstanceID() string {
	instanceOnce.Do(func() {
		if name := PodName(); name != "" {
			instanceID = name
			return
		}
		instanceID = uuid.NewString()
	})
	return instanceID
}
