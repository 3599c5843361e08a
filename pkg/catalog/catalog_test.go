package catalog_test

import (
	"sync"
	"testing"

	"github.com/arthur-debert/simctl/pkg/catalog"
	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo", 0755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("PK"), 0644))
	}
	return fs
}

func newCatalog(fs afero.Fs) *catalog.Catalog {
	return catalog.New(catalog.Options{FS: fs, Logger: zerolog.Nop()})
}

func TestRefreshFromDirectory(t *testing.T) {
	fs := newRepo(t,
		"/repo/Sitecore 8.1 rev. 160519.zip",
		"/repo/Sitecore 8.2 rev. 161221.zip",
		"/repo/modules/Web Forms for Marketers 8.2 rev. 160801.zip",
		"/repo/modules/readme.txt",
		"/repo/tools/not-a-package.zip",
	)
	c := newCatalog(fs)

	report, err := c.Refresh(catalog.DirSource("/repo"), nil)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Scanned, "only archives with a matching extension are scanned")
	assert.Equal(t, 3, report.Added)
	assert.Equal(t, 1, report.NotProduct)
	assert.Len(t, c.Products(), 3)

	modules := c.Modules()
	require.Len(t, modules, 1)
	assert.Equal(t, "Web Forms for Marketers", modules[0].Name)
}

func TestRefreshDeduplicatesInScanOrder(t *testing.T) {
	fs := newRepo(t,
		"/repo/a/Sitecore 8.2 rev. 161221.zip",
		"/repo/b/sitecore 8.2 rev. 161221 (copy).zip",
	)
	c := newCatalog(fs)

	report, err := c.Refresh(catalog.DirSource("/repo"), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Duplicates)
	products := c.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "/repo/a/Sitecore 8.2 rev. 161221.zip", products[0].ArchivePath)
}

func TestRefreshFromFileList(t *testing.T) {
	c := newCatalog(afero.NewMemMapFs())

	_, err := c.Refresh(catalog.FileSource(
		"/x/Sitecore 8.2 rev. 161221.zip",
		"/y/Sitecore 8.2 rev. 161221.zip",
		"/z/junk.zip",
	), nil)
	require.NoError(t, err)

	products := c.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "/x/Sitecore 8.2 rev. 161221.zip", products[0].ArchivePath)
}

func TestRefreshReplacesWholesale(t *testing.T) {
	fs := newRepo(t, "/repo/Sitecore 8.2 rev. 161221.zip")
	c := newCatalog(fs)

	_, err := c.Refresh(catalog.DirSource("/repo"), nil)
	require.NoError(t, err)
	require.Equal(t, 1, c.Snapshot().Len())

	_, err = c.Refresh(catalog.FileSource(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Snapshot().Len())
	assert.Empty(t, c.Modules())
}

func TestRefreshNotifiesExactlyOnce(t *testing.T) {
	t.Run("empty repository", func(t *testing.T) {
		c := newCatalog(newRepo(t))
		calls := 0
		_, err := c.Refresh(catalog.DirSource("/repo"), func(s *catalog.Snapshot, r catalog.RefreshReport) {
			calls++
			assert.Equal(t, 0, s.Len())
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("missing repository", func(t *testing.T) {
		fs := newRepo(t, "/repo/Sitecore 8.2 rev. 161221.zip")
		c := newCatalog(fs)
		_, err := c.Refresh(catalog.DirSource("/repo"), nil)
		require.NoError(t, err)

		calls := 0
		_, err = c.Refresh(catalog.DirSource("/missing"), func(s *catalog.Snapshot, r catalog.RefreshReport) {
			calls++
		})
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid), "got %v", err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, c.Snapshot().Len(), "a failed scan publishes an empty catalog")
	})
}

func TestReadersSeeCompleteSnapshots(t *testing.T) {
	fs := newRepo(t,
		"/repo/Sitecore 8.1 rev. 160519.zip",
		"/repo/Sitecore 8.2 rev. 161221.zip",
		"/repo/Web Forms for Marketers 8.2 rev. 160801.zip",
	)
	c := newCatalog(fs)
	_, err := c.Refresh(catalog.DirSource("/repo"), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := c.Snapshot()
				n := snap.Len()
				if n != 0 && n != 3 {
					t.Errorf("observed partial snapshot with %d products", n)
					return
				}
				assert.Len(t, snap.Modules(), n/3)
			}
		}()
	}

	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			_, _ = c.Refresh(catalog.FileSource(), nil)
		} else {
			_, _ = c.Refresh(catalog.DirSource("/repo"), nil)
		}
	}
	close(stop)
	wg.Wait()
}
