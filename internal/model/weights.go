package model

import (
	"os"
	"path/filepath"

	"github.com/five82/silhouette/internal/config"
)

// envOverride maps a variant to the environment variable that overrides its
// cache path, mirroring U2NET_PATH / U2NETP_PATH in the reference
// implementation. u2net_human_seg shares u2net's weight family and has no
// dedicated override.
func envOverride(variant config.ModelVariant) string {
	switch variant {
	case config.VariantU2Net, config.VariantU2NetHumanSeg:
		return "U2NET_PATH"
	case config.VariantU2NetP:
		return "U2NETP_PATH"
	default:
		return ""
	}
}

// CachePath resolves the on-disk location of a variant's weights file:
// the env override if set, else ${HOME}/.u2net/{variant}.pth.
func CachePath(variant config.ModelVariant) (string, error) {
	if env := envOverride(variant); env != "" {
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".u2net", string(variant)+".pth"), nil
}

// ExpectedSize returns the approximate weights file size in bytes for a
// variant, used by the fetcher's size-sanity check. u2netp is a distilled,
// much smaller network.
func ExpectedSize(variant config.ModelVariant) int64 {
	switch variant {
	case config.VariantU2NetP:
		return 4_500_000
	default:
		return 176_000_000
	}
}
