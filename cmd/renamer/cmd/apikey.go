package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/solatis/renamer/internal/core/auth"
	"github.com/solatis/renamer/internal/core/config"
)

var apiKeyCmd = &cobra.Command{
	Use:   "api-key",
	Short: "Manage API keys",
}

var (
	keyPack     string
	keyName     string
	keySecretID string
)

var apiKeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a new API key bound to a pack",
	RunE: func(cmd *cobra.Command, args []string) error {
		secrets, err := config.HMACSecrets()
		if err != nil {
			return fmt.Errorf("failed to load HMAC secrets: %w", err)
		}
		secretID, secret, err := pickSecret(secrets, keySecretID)
		if err != nil {
			return err
		}

		b, err := requireStore()
		if err != nil {
			return err
		}
		defer b.Close()

		key, id, err := auth.IssueKey(b.queries, secretID, secret, keyPack, keyName)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"api_key_id": id,
			"pack":       keyPack,
		}).Info("issued API key")
		// The plaintext key is only ever shown here.
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var apiKeyRevokeCmd = &cobra.Command{
	Use:   "revoke ID",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := requireStore()
		if err != nil {
			return err
		}
		defer b.Close()

		ok, err := auth.RevokeKey(b.queries, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("API key %s not found or already revoked", args[0])
		}
		logger.WithField("api_key_id", args[0]).Info("revoked API key")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(apiKeyCmd)
	apiKeyCmd.AddCommand(apiKeyCreateCmd, apiKeyRevokeCmd)

	apiKeyCreateCmd.Flags().StringVar(&keyPack, "pack", "", "pack the key is bound to (empty allows every pack)")
	apiKeyCreateCmd.Flags().StringVar(&keyName, "name", "", "human-readable key name")
	apiKeyCreateCmd.Flags().StringVar(&keySecretID, "secret-id", "", "HMAC secret id to sign with (optional when only one secret is configured)")
	apiKeyCreateCmd.MarkFlagRequired("name")
}

// pickSecret returns the secret named id, or the only configured secret when
// id is empty.
func pickSecret(secrets map[string][]byte, id string) (string, []byte, error) {
	if id != "" {
		secret, ok := secrets[id]
		if !ok {
			return "", nil, fmt.Errorf("no HMAC secret with id %q", id)
		}
		return id, secret, nil
	}
	switch len(secrets) {
	case 0:
		return "", nil, fmt.Errorf("no HMAC secrets configured (set %s_HMAC_SECRET environment variable)", config.EnvPrefix)
	case 1:
		for sid, secret := range secrets {
			return sid, secret, nil
		}
	}
	return "", nil, fmt.Errorf("%d HMAC secrets configured, pass --secret-id", len(secrets))
}
