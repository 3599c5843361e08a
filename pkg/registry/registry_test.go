package registry

import (
	"sync"
	"testing"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID   int
	Name string
}

func TestRegister(t *testing.T) {
	reg := New[testItem]()

	t.Run("register valid item", func(t *testing.T) {
		require.NoError(t, reg.Register("install", testItem{ID: 1, Name: "install"}))
		assert.Equal(t, 1, reg.Count())
	})

	t.Run("register with empty name", func(t *testing.T) {
		err := reg.Register("  ", testItem{ID: 2})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)
	})

	t.Run("register duplicate ignores case", func(t *testing.T) {
		err := reg.Register("INSTALL", testItem{ID: 3})
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists), "got %v", err)
	})
}

func TestGet(t *testing.T) {
	reg := New[testItem]()
	require.NoError(t, reg.Register("Delete", testItem{ID: 1, Name: "delete"}))

	got, err := reg.Get("delete")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)

	_, err = reg.Get("missing")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound), "got %v", err)
	assert.Equal(t, "missing", errors.GetErrorDetails(err)["name"])
}

func TestRemoveKeepsOrder(t *testing.T) {
	reg := New[testItem]()
	for i, name := range []string{"install", "delete", "reinstall", "import"} {
		require.NoError(t, reg.Register(name, testItem{ID: i}))
	}

	require.NoError(t, reg.Remove("delete"))
	assert.Equal(t, []string{"install", "reinstall", "import"}, reg.List())
	assert.False(t, reg.Has("delete"))

	got, err := reg.Get("import")
	require.NoError(t, err)
	assert.Equal(t, 3, got.ID)

	err = reg.Remove("delete")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestConcurrentAccess(t *testing.T) {
	reg := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = reg.Register(string(rune('a'+i%26))+string(rune('a'+i/26)), i)
			_ = reg.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, reg.Count())
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	reg := New[int]()
	MustRegister(reg, "install", 1)
	assert.Panics(t, func() { MustRegister(reg, "install", 2) })
}
