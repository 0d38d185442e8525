package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/rigview-go/viewer/asset"
)

// loadDescriptor reads a rig descriptor from disk: a skeleton file, an atlas
// descriptor file, and zero or more image files. Image names are the base
// filenames, which is what atlas page declarations reference.
//
// Parameters:
//   - skeletonPath: path to the skeleton blob
//   - atlasPath: path to the atlas descriptor text
//   - imagePaths: paths to the page image files
//
// Returns:
//   - asset.RigDescriptor: the assembled descriptor
//   - error: error if any file cannot be read
func loadDescriptor(skeletonPath, atlasPath string, imagePaths []string) (asset.RigDescriptor, error) {
	skeleton, err := os.ReadFile(skeletonPath)
	if err != nil {
		return asset.RigDescriptor{}, fmt.Errorf("read skeleton %s: %w", skeletonPath, err)
	}
	atlas, err := os.ReadFile(atlasPath)
	if err != nil {
		return asset.RigDescriptor{}, fmt.Errorf("read atlas %s: %w", atlasPath, err)
	}

	images := make([]asset.NamedBlob, 0, len(imagePaths))
	for _, path := range imagePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return asset.RigDescriptor{}, fmt.Errorf("read image %s: %w", path, err)
		}
		images = append(images, asset.NamedBlob{
			Name: filepath.Base(path),
			Data: data,
		})
	}

	return asset.RigDescriptor{
		Skeleton: skeleton,
		Atlas:    atlas,
		Images:   images,
	}, nil
}
