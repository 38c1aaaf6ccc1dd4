package core

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eggctl/src/internal/appdir"
)

func snapshotDir() string {
	return filepath.Join(appdir.MustHome(), "snaps")
}

func CreateSnapshot(name string) error {
	home := appdir.MustHome()
	snapsDir := snapshotDir()
	if err := os.MkdirAll(snapsDir, 0755); err != nil {
		return err
	}

	snapPath := filepath.Join(snapsDir, fmt.Sprintf("%s_%d.zip", name, time.Now().Unix()))

	// zip the eggctl home directory, excluding the snaps store itself
	return zipDirectory(home, snapPath, []string{"snaps"})
}

func RestoreSnapshot(name string) error {
	snapsDir := snapshotDir()
	matches, err := filepath.Glob(filepath.Join(snapsDir, name+"_*.zip"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no snapshot found named %q", name)
	}
	// most recent match wins (filenames are suffixed with a unix timestamp)
	snapPath := matches[len(matches)-1]
	return unzipInto(snapPath, appdir.MustHome())
}

func zipDirectory(source, target string, exclude []string) error {
	zipfile, err := os.Create(target)
	if err != nil {
		return err
	}
	defer zipfile.Close()

	archive := zip.NewWriter(zipfile)
	defer archive.Close()

	return filepath.Walk(source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Handle exclusions
		for _, ex := range exclude {
			if strings.Contains(path, ex) && path != source {
				return nil
			}
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		header.Name, err = filepath.Rel(source, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			header.Name += "/"
		} else {
			header.Method = zip.Deflate
		}

		writer, err := archive.CreateHeader(header)
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(writer, file)
		return err
	})
}

func unzipInto(source, destDir string) error {
	reader, err := zip.OpenReader(source)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, f := range reader.File {
		destPath := filepath.Join(destDir, f.Name)
		if destPath != filepath.Clean(destDir) && !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("snapshot entry escapes destination: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, f.Mode()); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
