package addrtable

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/meshprov/addrspace/pkg/meshaddr"
)

var initEntries = map[meshaddr.Address]string{
	0x0001: "a",
	0x0002: "b",
	0x0100: "c",
}

func TestNew(t *testing.T) {
	cases := map[string]struct {
		first           meshaddr.Address
		last            meshaddr.Address
		initEntries     map[meshaddr.Address]string
		expectedEntries int
		expectedErr     bool
	}{
		"NewWithoutInitEntries": {
			first:           0x0001,
			last:            0x7FFF,
			initEntries:     nil,
			expectedEntries: 0,
		},
		"NewWithInitEntries": {
			first:           0x0001,
			last:            0x7FFF,
			initEntries:     initEntries,
			expectedEntries: 3,
		},
		"NewErrorOutOfBand": {
			first:       0x0001,
			last:        0x00FF,
			initEntries: initEntries,
			expectedErr: true,
		},
		"NewErrorInvertedBand": {
			first:       0x0100,
			last:        0x0001,
			expectedErr: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := New[string](tc.first, tc.last, tc.initEntries, nil)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
			}
		})
	}
}

func TestClaim(t *testing.T) {
	cases := map[string]struct {
		initEntries       map[meshaddr.Address]string
		newSuccessEntries map[meshaddr.Address]string
		newFailedEntries  map[meshaddr.Address]string
		expectedEntries   int
	}{
		"Normal": {
			initEntries: initEntries,
			newSuccessEntries: map[meshaddr.Address]string{
				0x0010: "a",
				0x0011: "b",
			},
			newFailedEntries: map[meshaddr.Address]string{
				0x0001: "already claimed",
				0x8000: "out of band",
			},
			expectedEntries: 5,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := New[string](meshaddr.MinUnicast, meshaddr.MaxUnicast, tc.initEntries, nil)
			assert.NoError(t, err)

			for addr, d := range tc.newSuccessEntries {
				err := r.Claim(addr, d)
				assert.NoError(t, err)
			}
			for addr, d := range tc.newFailedEntries {
				err := r.Claim(addr, d)
				assert.Error(t, err)
			}
			for addr := range tc.initEntries {
				if !r.Has(addr) {
					t.Errorf("%s expecting initEntry: %s\n", name, addr)
				}
			}
			for addr := range tc.newSuccessEntries {
				if !r.Has(addr) {
					t.Errorf("%s expecting success claim entry: %s\n", name, addr)
				}
			}
			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
			}
		})
	}
}

func TestClaimSpan(t *testing.T) {
	cases := map[string]struct {
		initEntries     map[meshaddr.Address]string
		start           meshaddr.Address
		count           int
		expectedEntries int
		expectedErr     bool
	}{
		"Normal": {
			start:           0x0010,
			count:           5,
			expectedEntries: 5,
		},
		"ErrorOccupied": {
			initEntries:     initEntries,
			start:           0x0001,
			count:           5,
			expectedEntries: 3,
			expectedErr:     true,
		},
		"ErrorBeyondBand": {
			start:       0x7FFE,
			count:       5,
			expectedErr: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := New[string](meshaddr.MinUnicast, meshaddr.MaxUnicast, tc.initEntries, nil)
			assert.NoError(t, err)

			err = r.ClaimSpan(tc.start, tc.count, "node")
			if tc.expectedErr {
				assert.Error(t, err)
				if r.Count() != tc.expectedEntries {
					t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
				}
				return
			}
			assert.NoError(t, err)
			for i := 0; i < tc.count; i++ {
				if !r.Has(tc.start + meshaddr.Address(i)) {
					t.Errorf("%s expecting entry: %s\n", name, tc.start+meshaddr.Address(i))
				}
			}
			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
			}
		})
	}
}

func TestClaimFreeSpan(t *testing.T) {
	r, err := New[string](0x0001, 0x000A, map[meshaddr.Address]string{
		0x0003: "x",
	}, nil)
	assert.NoError(t, err)

	// first free run of 3 sits after the claimed address
	start, err := r.ClaimFreeSpan(3, "node")
	assert.NoError(t, err)
	assert.Equal(t, meshaddr.Address(0x0004), start)

	start, err = r.ClaimFreeSpan(2, "node")
	assert.NoError(t, err)
	assert.Equal(t, meshaddr.Address(0x0001), start)

	// only 0x0007-0x000a is left, a run of 5 no longer fits
	_, err = r.ClaimFreeSpan(5, "node")
	assert.Error(t, err)
	start, err = r.ClaimFreeSpan(4, "node")
	assert.NoError(t, err)
	assert.Equal(t, meshaddr.Address(0x0007), start)
}

func TestRelease(t *testing.T) {
	r, err := New[string](meshaddr.MinUnicast, meshaddr.MaxUnicast, initEntries, nil)
	assert.NoError(t, err)

	assert.NoError(t, r.Release(0x0001))
	// releasing a free address is not an error
	assert.NoError(t, r.Release(0x0050))
	assert.Error(t, r.Release(0x9000))

	assert.False(t, r.Has(0x0001))
	assert.True(t, r.Has(0x0002))
	assert.Equal(t, 2, r.Count())

	assert.NoError(t, r.ReleaseSpan(0x0002, 2))
	assert.Equal(t, 1, r.Count())
}

func TestUpdate(t *testing.T) {
	r, err := New[string](meshaddr.MinUnicast, meshaddr.MaxUnicast, initEntries, nil)
	assert.NoError(t, err)

	assert.NoError(t, r.Update(0x0001, "a2"))
	d, err := r.Get(0x0001)
	assert.NoError(t, err)
	assert.Equal(t, "a2", d)

	assert.Error(t, r.Update(0x0050, "missing"))
}

func TestValidationFn(t *testing.T) {
	r, err := New[string](meshaddr.MinUnicast, meshaddr.MaxUnicast, nil,
		func(addr meshaddr.Address) error {
			if addr > 0x000F {
				return fmt.Errorf("address %s not allowed", addr)
			}
			return nil
		},
	)
	assert.NoError(t, err)

	assert.NoError(t, r.Claim(0x000F, "ok"))
	assert.Error(t, r.Claim(0x0010, "blocked"))

	// free-span search skips addresses the validation fn rejects
	_, err = r.FindFreeSpan(15)
	assert.Error(t, err)
	start, err := r.FindFreeSpan(14)
	assert.NoError(t, err)
	assert.Equal(t, meshaddr.Address(0x0001), start)
}

func TestIterate(t *testing.T) {
	cases := map[string]struct {
		initEntries map[meshaddr.Address]string
		keys        []meshaddr.Address
	}{
		"Normal": {
			initEntries: initEntries,
			keys:        []meshaddr.Address{0x0001, 0x0002, 0x0100},
		},
		"None": {
			initEntries: nil,
			keys:        nil,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := New[string](meshaddr.MinUnicast, meshaddr.MaxUnicast, tc.initEntries, nil)
			assert.NoError(t, err)

			var keys []meshaddr.Address
			iter := r.Iterate()
			for iter.Next() {
				keys = append(keys, iter.Address())
			}
			if diff := cmp.Diff(tc.keys, keys); diff != "" {
				t.Errorf("%s: -want, +got:\n%s", name, diff)
			}
		})
	}
}

func TestIsConsecutive(t *testing.T) {
	r, err := New[string](meshaddr.MinUnicast, meshaddr.MaxUnicast, map[meshaddr.Address]string{
		0x0001: "a",
		0x0002: "b",
		0x0004: "c",
	}, nil)
	assert.NoError(t, err)

	iter := r.Iterate()
	assert.True(t, iter.Next())
	assert.False(t, iter.IsConsecutive())
	assert.True(t, iter.Next())
	assert.True(t, iter.IsConsecutive())
	assert.True(t, iter.Next())
	assert.False(t, iter.IsConsecutive())
	assert.False(t, iter.Next())
}
