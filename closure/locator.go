package closure

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tliron/commonlog"
)

// Locator is one classpath element. Names are internal class names in '/'
// form without the .class suffix.
type Locator interface {
	// Base is the value recorded in a DependencySet for classes found here.
	Base() string
	Has(name string) bool
	Open(name string) (io.ReadCloser, error)
	Close() error
}

// reservedDeviceNames cannot name regular files on Windows, whatever the
// extension, even though a stat on them succeeds.
var reservedDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

func isReservedDeviceName(name string) bool {
	return reservedDeviceNames[strings.ToUpper(path.Base(name))]
}

type DirLocator struct {
	Dir string
	// DenyDevices makes reserved device names unresolvable.
	DenyDevices bool
}

func NewDirLocator(dir string) *DirLocator {
	return &DirLocator{Dir: dir, DenyDevices: runtime.GOOS == "windows"}
}

func (l *DirLocator) Base() string { return l.Dir }

func (l *DirLocator) file(name string) string {
	return filepath.Join(l.Dir, filepath.FromSlash(name)+".class")
}

func (l *DirLocator) Has(name string) bool {
	if l.DenyDevices && isReservedDeviceName(name) {
		return false
	}
	info, err := os.Stat(l.file(name))
	return err == nil && info.Mode().IsRegular()
}

func (l *DirLocator) Open(name string) (io.ReadCloser, error) {
	return os.Open(l.file(name))
}

func (l *DirLocator) Close() error { return nil }

// ArchiveLocator serves classes from a jar or zip file.
type ArchiveLocator struct {
	path    string
	zr      *zip.ReadCloser
	entries map[string]*zip.File
}

func OpenArchiveLocator(path string) (*ArchiveLocator, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	l := &ArchiveLocator{path: path, zr: zr, entries: make(map[string]*zip.File)}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		l.entries[strings.TrimSuffix(f.Name, ".class")] = f
	}
	return l, nil
}

func (l *ArchiveLocator) Base() string { return l.path }

func (l *ArchiveLocator) Has(name string) bool {
	_, ok := l.entries[name]
	return ok
}

func (l *ArchiveLocator) Open(name string) (io.ReadCloser, error) {
	f, ok := l.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s.class not in %s", name, l.path)
	}
	return f.Open()
}

func (l *ArchiveLocator) Close() error { return l.zr.Close() }

// NewLocators turns search path entries into locators, in order.
// Directories are searched as class roots and .jar/.zip files as archives.
// Entries that are missing or unreadable are logged and skipped.
func NewLocators(searchPaths []string, log commonlog.Logger) []Locator {
	var locators []Locator
	for _, p := range searchPaths {
		info, err := os.Stat(p)
		if err != nil {
			log.Warningf("skipping search path entry %s: %s", p, err)
			continue
		}
		if info.IsDir() {
			locators = append(locators, NewDirLocator(p))
			continue
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".jar", ".zip":
			l, err := OpenArchiveLocator(p)
			if err != nil {
				log.Warningf("skipping search path entry %s: %s", p, err)
				continue
			}
			locators = append(locators, l)
		default:
			log.Warningf("skipping search path entry %s: not a directory or archive", p)
		}
	}
	return locators
}
