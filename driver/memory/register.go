package memory

import "github.com/gobeaver/transferkit"

func init() {
	transferkit.RegisterDriver(transferkit.BackendMemory, func(cfg *transferkit.Config) (transferkit.FileSystem, error) {
		return New(), nil
	})
}
