package ldap

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// ProviderData is handed to every resource and data source. It carries the
// directory and the identity operations run as.
type ProviderData struct {
	Directory *Directory
	// Actor is nil when operations run as the fallback account.
	Actor *Actor
}

// NewProviderData creates a new provider data wrapper.
func NewProviderData(directory *Directory, actor *Actor) *ProviderData {
	if !actor.valid() {
		actor = nil
	}
	return &ProviderData{Directory: directory, Actor: actor}
}

// ValidateConnection opens and closes one session as the configured identity.
func (pd *ProviderData) ValidateConnection(ctx context.Context) error {
	if pd == nil || pd.Directory == nil {
		return fmt.Errorf("directory is not initialized")
	}

	s, err := pd.Directory.provider.Open(ctx, pd.Actor)
	if err != nil {
		return fmt.Errorf("directory connection failed: %w", err)
	}
	identity := s.Identity()
	_ = s.Close()

	tflog.Debug(ctx, "Provider data validation successful", map[string]any{
		"identity": identity,
		"actor":    pd.Actor != nil,
	})

	return nil
}
