package transferkit

import (
	"github.com/gobeaver/beaver-kit/config"
)

// Backend kind identifiers accepted by the factory.
const (
	BackendDataLake = "azure_datalake"
	BackendNetShare = "windows_network"
	BackendMemory   = "memory"
)

type Config struct {
	// Backend kind to use (azure_datalake, windows_network, memory)
	Backend string `env:"TRANSFERKIT_BACKEND,default:windows_network"`

	// Azure Data Lake Storage Gen2 configuration
	DataLakeAccountName string `env:"TRANSFERKIT_DATALAKE_ACCOUNT_NAME"`
	DataLakeAccountKey  string `env:"TRANSFERKIT_DATALAKE_ACCOUNT_KEY"`
	DataLakeSASToken    string `env:"TRANSFERKIT_DATALAKE_SAS_TOKEN"`
	DataLakeFileSystem  string `env:"TRANSFERKIT_DATALAKE_FILESYSTEM"`
	DataLakePrefix      string `env:"TRANSFERKIT_DATALAKE_PREFIX"`
	DataLakeEndpoint    string `env:"TRANSFERKIT_DATALAKE_ENDPOINT"` // Optional custom account URL

	// Windows network share configuration.
	// Accepts a UNC path (\\server\share), a mapped drive (Z:\) or any
	// mounted directory.
	ShareBasePath string `env:"TRANSFERKIT_SHARE_BASE_PATH"`

	// Default transfer options
	TransferOverwrite bool   `env:"TRANSFERKIT_TRANSFER_OVERWRITE,default:true"`
	TransferVerify    string `env:"TRANSFERKIT_TRANSFER_VERIFY"` // Checksum algorithm, empty disables verification
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
