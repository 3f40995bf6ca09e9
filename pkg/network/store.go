package network

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/meshprov/addrspace/pkg/meshaddr"
	"github.com/meshprov/addrspace/pkg/provisioner"
)

// StateVersion is the current version of the network file format.
const StateVersion = 1

type networkState struct {
	Version      int                `yaml:"version"`
	Name         string             `yaml:"name"`
	Provisioners []provisionerState `yaml:"provisioners,omitempty"`
}

// provisionerState mirrors provisioner.Provisioner for serialization.
// Ranges are stored as "low-high" strings with 0x-prefixed bounds.
type provisionerState struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	UnicastRanges []string `yaml:"unicast_ranges,omitempty"`
	GroupRanges   []string `yaml:"group_ranges,omitempty"`
	SceneRanges   []string `yaml:"scene_ranges,omitempty"`
}

// Store persists a network to a YAML file.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes the network to disk.
func (s *Store) Save(n *Network) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := networkState{
		Version: StateVersion,
		Name:    n.Name(),
	}
	for _, p := range n.Provisioners() {
		ps := provisionerState{
			ID:   p.ID().String(),
			Name: p.Name(),
		}
		for _, r := range p.UnicastRanges() {
			ps.UnicastRanges = append(ps.UnicastRanges, r.String())
		}
		for _, r := range p.GroupRanges() {
			ps.GroupRanges = append(ps.GroupRanges, r.String())
		}
		for _, r := range p.SceneRanges() {
			ps.SceneRanges = append(ps.SceneRanges, r.String())
		}
		state.Provisioners = append(state.Provisioners, ps)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Load reads the network from disk. Returns nil, nil if the file doesn't
// exist. Stored range lists are not trusted to be canonical: each
// provisioner is rebuilt through the normalizing constructor. Members are
// restored as stored, without re-running admission checks.
func (s *Store) Load() (*Network, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := networkState{}
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	n := New(state.Name)
	for _, ps := range state.Provisioners {
		p, err := loadProvisioner(ps)
		if err != nil {
			return nil, fmt.Errorf("invalid provisioner %q: %w", ps.Name, err)
		}
		n.provisioners = append(n.provisioners, p)
	}
	return n, nil
}

// Clear removes the network file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func loadProvisioner(ps provisionerState) (*provisioner.Provisioner, error) {
	id, err := uuid.Parse(ps.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", ps.ID, err)
	}

	var errm error
	unicast := make([]meshaddr.AddressRange, 0, len(ps.UnicastRanges))
	for _, s := range ps.UnicastRanges {
		r, err := meshaddr.ParseRange(s)
		if err != nil {
			errm = errors.Join(errm, err)
			continue
		}
		unicast = append(unicast, r)
	}
	group := make([]meshaddr.AddressRange, 0, len(ps.GroupRanges))
	for _, s := range ps.GroupRanges {
		r, err := meshaddr.ParseRange(s)
		if err != nil {
			errm = errors.Join(errm, err)
			continue
		}
		group = append(group, r)
	}
	scenes := make([]meshaddr.SceneRange, 0, len(ps.SceneRanges))
	for _, s := range ps.SceneRanges {
		r, err := meshaddr.ParseSceneRange(s)
		if err != nil {
			errm = errors.Join(errm, err)
			continue
		}
		scenes = append(scenes, r)
	}
	if errm != nil {
		return nil, errm
	}
	return provisioner.NewWithID(id, ps.Name, unicast, group, scenes), nil
}
