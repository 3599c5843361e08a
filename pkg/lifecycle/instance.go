package lifecycle

import (
	"path/filepath"
	"strings"
	"time"
)

// InstanceState is the run state of a site.
type InstanceState string

const (
	StateStarted InstanceState = "started"
	StateStopped InstanceState = "stopped"
)

// AppPool describes the application pool a site runs in.
type AppPool struct {
	Name         string       `toml:"name"`
	Identity     string       `toml:"identity"`
	IdentityType IdentityType `toml:"identity_type"`
	Net4         bool         `toml:"net4"`
	Classic      bool         `toml:"classic"`
	Is32Bit      bool         `toml:"is_32bit"`
}

// Instance is a provisioned site.
type Instance struct {
	ID          int64         `toml:"id"`
	Name        string        `toml:"name"`
	HostNames   []string      `toml:"host_names"`
	RootPath    string        `toml:"root_path"`
	WebRootPath string        `toml:"web_root_path"`
	DataFolder  string        `toml:"data_folder"`
	AppPool     AppPool       `toml:"app_pool"`
	State       InstanceState `toml:"state"`
	ProcessIDs  []int         `toml:"process_ids"`
	CreatedAt   time.Time     `toml:"created_at"`
	RecycledAt  time.Time     `toml:"recycled_at"`
}

// SiteConfig is the input for creating a site.
type SiteConfig struct {
	Name            string
	HostNames       []string
	RootPath        string
	WebRootPath     string
	DataFolder      string
	AppPoolIdentity string
	Net4            bool
	Classic         bool
	Is32Bit         bool
}

// InstanceProvider manages sites and their application pools.
type InstanceProvider interface {
	Create(cfg SiteConfig) (Instance, error)
	Lookup(name string) (Instance, error)
	LookupByPath(path string) (Instance, error)
	List() ([]Instance, error)
	Start(inst Instance) error
	Stop(inst Instance) error
	Recycle(inst Instance) error
	ProcessIDs(inst Instance) ([]int, error)
	Delete(inst Instance) error
}

// SamePath compares filesystem paths the way the host does: separators
// normalized, trailing separators ignored, case-insensitive.
func SamePath(a, b string) bool {
	return normalizePath(a) == normalizePath(b)
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return strings.ToLower(filepath.ToSlash(filepath.Clean(p)))
}
