package netshare

import "github.com/gobeaver/transferkit"

func init() {
	transferkit.RegisterDriver(transferkit.BackendNetShare, func(cfg *transferkit.Config) (transferkit.FileSystem, error) {
		a, err := New(cfg.ShareBasePath)
		if err != nil {
			return nil, err
		}
		return a, nil
	})
}
