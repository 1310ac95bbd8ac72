package vault

import (
	"context"
	"strings"
)

// AttachmentPathPolicy mirrors the host storage convention for where
// downloaded assets land relative to the note's save folder:
//
//	""            save folder itself
//	"./"          save folder itself (current folder)
//	"/"           vault root
//	"./sub"       subfolder of the save folder, created on demand
//	"sub/folder"  fixed vault-relative folder, as configured
type AttachmentPathPolicy string

// Resolve returns the vault-relative path for an asset named fileName
// filed while saving into saveFolder, creating intermediate folders
// through store where the policy requires it.
func (p AttachmentPathPolicy) Resolve(ctx context.Context, store DocumentStore, saveFolder, fileName string) (string, error) {
	folder := saveFolder
	if folder == "/" {
		folder = ""
	}
	folder = strings.TrimSuffix(folder, "/")

	policy := string(p)
	switch {
	case policy == "":
		if folder == "" {
			return fileName, nil
		}
		return folder + "/" + fileName, nil
	case policy == "./":
		if folder == "" {
			return fileName, nil
		}
		return folder + "/" + fileName, nil
	case policy == "/":
		return fileName, nil
	case len(policy) > 2 && strings.HasPrefix(policy, "./"):
		sub := policy[2:]
		target := sub
		if folder != "" {
			target = folder + "/" + sub
		}
		if err := store.CreateFolder(ctx, target); err != nil {
			return "", err
		}
		return target + "/" + fileName, nil
	default:
		return strings.TrimSuffix(policy, "/") + "/" + fileName, nil
	}
}
