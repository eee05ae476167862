package app

import (
	"context"
	"fmt"

	"github.com/emergencyconnect/kms/internal/kms/domain"
	kmsHTTP "github.com/emergencyconnect/kms/internal/kms/http"
	"github.com/emergencyconnect/kms/internal/kms/service"
	kmsUseCase "github.com/emergencyconnect/kms/internal/kms/usecase"
)

// Policy returns the environment key policy derived from the configuration.
func (c *Container) Policy() (domain.Policy, error) {
	env, err := domain.ParseEnvironment(c.config.Environment)
	if err != nil {
		return domain.Policy{}, fmt.Errorf("invalid environment in configuration: %w", err)
	}
	return domain.PolicyFor(env, c.config.RotationInterval), nil
}

// SecretLoader returns the startup secret loader.
func (c *Container) SecretLoader() (*service.SecretLoader, error) {
	var err error
	c.secretLoaderInit.Do(func() {
		c.secretLoader, err = c.initSecretLoader()
		if err != nil {
			c.initErrors["secretLoader"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretLoader"]; exists {
		return nil, storedErr
	}
	return c.secretLoader, nil
}

// KeyStore returns the in-memory signing key store.
// The master secret and salt are loaded on first access; in production a
// missing or short master secret fails initialization.
func (c *Container) KeyStore() (*service.MemoryKeyStore, error) {
	var err error
	c.keyStoreInit.Do(func() {
		c.keyStore, err = c.initKeyStore()
		if err != nil {
			c.initErrors["keyStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyStore"]; exists {
		return nil, storedErr
	}
	return c.keyStore, nil
}

// TokenSigner returns the JWT signing service.
func (c *Container) TokenSigner() *service.TokenSigner {
	c.tokenSignerInit.Do(func() {
		c.tokenSigner = service.NewTokenSigner()
	})
	return c.tokenSigner
}

// TokenUseCase returns the token issuance and verification use case.
func (c *Container) TokenUseCase() (kmsUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// AdminUseCase returns the administrative cache inspection and revocation use case.
func (c *Container) AdminUseCase() (kmsUseCase.AdminUseCase, error) {
	var err error
	c.adminUseCaseInit.Do(func() {
		c.adminUseCase, err = c.initAdminUseCase()
		if err != nil {
			c.initErrors["adminUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminUseCase"]; exists {
		return nil, storedErr
	}
	return c.adminUseCase, nil
}

// KMSHandler returns the HTTP handler for token and admin operations.
func (c *Container) KMSHandler() (*kmsHTTP.KMSHandler, error) {
	var err error
	c.kmsHandlerInit.Do(func() {
		c.kmsHandler, err = c.initKMSHandler()
		if err != nil {
			c.initErrors["kmsHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kmsHandler"]; exists {
		return nil, storedErr
	}
	return c.kmsHandler, nil
}

// RotationSweeper returns the background stale key sweeper.
func (c *Container) RotationSweeper() (*kmsUseCase.RotationSweeper, error) {
	var err error
	c.rotationSweeperInit.Do(func() {
		c.rotationSweeper, err = c.initRotationSweeper()
		if err != nil {
			c.initErrors["rotationSweeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationSweeper"]; exists {
		return nil, storedErr
	}
	return c.rotationSweeper, nil
}

// initSecretLoader creates the secret loader with the KMS keeper opener.
func (c *Container) initSecretLoader() (*service.SecretLoader, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy for secret loader: %w", err)
	}

	return service.NewSecretLoader(policy, service.NewKeeperOpener(), c.Logger()), nil
}

// initKeyStore loads the master secret and salt, then builds the key store.
func (c *Container) initKeyStore() (*service.MemoryKeyStore, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy for key store: %w", err)
	}

	loader, err := c.SecretLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret loader for key store: %w", err)
	}

	masterSecret, err := loader.LoadMasterSecret(context.Background(), c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load master secret: %w", err)
	}

	salt, err := loader.LoadDerivationSalt(c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load derivation salt: %w", err)
	}

	return service.NewMemoryKeyStore(policy, masterSecret, salt), nil
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (kmsUseCase.TokenUseCase, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy for token use case: %w", err)
	}

	keyStore, err := c.KeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for token use case: %w", err)
	}

	baseUseCase := kmsUseCase.NewTokenUseCase(c.config, policy, keyStore, c.TokenSigner())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return kmsUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAdminUseCase creates the admin use case with all its dependencies.
func (c *Container) initAdminUseCase() (kmsUseCase.AdminUseCase, error) {
	keyStore, err := c.KeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for admin use case: %w", err)
	}

	baseUseCase := kmsUseCase.NewAdminUseCase(keyStore, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for admin use case: %w", err)
		}
		return kmsUseCase.NewAdminUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initKMSHandler creates the KMS HTTP handler with all its dependencies.
func (c *Container) initKMSHandler() (*kmsHTTP.KMSHandler, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for kms handler: %w", err)
	}

	adminUseCase, err := c.AdminUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get admin use case for kms handler: %w", err)
	}

	return kmsHTTP.NewKMSHandler(tokenUseCase, adminUseCase, c.Logger()), nil
}

// initRotationSweeper creates the rotation sweeper worker.
func (c *Container) initRotationSweeper() (*kmsUseCase.RotationSweeper, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy for rotation sweeper: %w", err)
	}

	keyStore, err := c.KeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for rotation sweeper: %w", err)
	}

	return kmsUseCase.NewRotationSweeper(policy, keyStore, 0, c.Logger()), nil
}
