//go:build !linux

package archive

func renameNoReplace(src, dst string) error {
	return renameChecked(src, dst)
}
