package datalake

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/service"
	"github.com/gobeaver/transferkit"
)

func init() {
	transferkit.RegisterDriver(transferkit.BackendDataLake, func(cfg *transferkit.Config) (transferkit.FileSystem, error) {
		if cfg.DataLakeFileSystem == "" {
			return nil, fmt.Errorf("data lake file system name is required")
		}
		if cfg.DataLakeAccountName == "" && cfg.DataLakeEndpoint == "" {
			return nil, fmt.Errorf("data lake account name or endpoint is required")
		}

		// Build service URL (the dfs endpoint, not blob)
		serviceURL := fmt.Sprintf("https://%s.dfs.core.windows.net/", cfg.DataLakeAccountName)
		if cfg.DataLakeEndpoint != "" {
			serviceURL = cfg.DataLakeEndpoint
		}

		client, err := newServiceClient(serviceURL, cfg)
		if err != nil {
			return nil, err
		}

		var options []AdapterOption
		if cfg.DataLakePrefix != "" {
			options = append(options, WithPrefix(cfg.DataLakePrefix))
		}

		return New(client, cfg.DataLakeFileSystem, options...), nil
	})
}

// newServiceClient picks a credential from the config: shared key, then SAS
// token, then the Azure identity default chain (env, managed identity, CLI).
func newServiceClient(serviceURL string, cfg *transferkit.Config) (*service.Client, error) {
	switch {
	case cfg.DataLakeAccountKey != "":
		cred, err := azdatalake.NewSharedKeyCredential(cfg.DataLakeAccountName, cfg.DataLakeAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err := service.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create data lake client: %w", err)
		}
		return client, nil

	case cfg.DataLakeSASToken != "":
		sasURL := strings.TrimSuffix(serviceURL, "/") + "/?" + strings.TrimPrefix(cfg.DataLakeSASToken, "?")
		client, err := service.NewClientWithNoCredential(sasURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create data lake client: %w", err)
		}
		return client, nil

	default:
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure credential: %w", err)
		}
		client, err := service.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create data lake client: %w", err)
		}
		return client, nil
	}
}
