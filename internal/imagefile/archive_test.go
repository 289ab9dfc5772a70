package imagefile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func put(t *testing.T, root, rel string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("jpeg"), 0o644))
	return p
}

func TestListDay(t *testing.T) {
	root := t.TempDir()
	late := put(t, root, "2023/11/14/20231114150000.jpg")
	early := put(t, root, "2023/11/14/Lillevik Lofoten_01_20231114080000.jpg")
	put(t, root, "2023/11/14/mini/20231114150000.jpg")
	put(t, root, "2023/11/14/latest.jpg")
	put(t, root, "2023/11/14/readme.txt")

	frames, err := ListDay(root, time.Date(2023, 11, 14, 0, 0, 0, 0, utc1), utc1)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	assert.Equal(t, early, frames[0].Path)
	assert.Empty(t, frames[0].Mini)
	assert.Equal(t, int64(4), frames[0].Size)

	assert.Equal(t, late, frames[1].Path)
	assert.Equal(t, MiniPath(late), frames[1].Mini)
	assert.Equal(t, 15, frames[1].Taken.Hour())
}

func TestListDayMissing(t *testing.T) {
	_, err := ListDay(t.TempDir(), time.Date(2023, 1, 1, 0, 0, 0, 0, utc1), utc1)
	assert.True(t, IsNotExist(err))
}

func TestDaysWithFrames(t *testing.T) {
	root := t.TempDir()
	put(t, root, "2020/02/03/20200203120000.jpg")
	put(t, root, "2020/02/29/20200229120000.jpg")
	put(t, root, "2020/02/10/notes.txt")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2020/02/11"), 0o755))

	days, err := DaysWithFrames(root, 2020, time.February, utc1)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 3, days[0].Day())
	assert.Equal(t, 29, days[1].Day())

	_, err = DaysWithFrames(root, 2020, time.March, utc1)
	assert.True(t, IsNotExist(err))
}

func TestLatest(t *testing.T) {
	root := t.TempDir()
	put(t, root, "2022/12/31/20221231235900.jpg")
	put(t, root, "2023/01/02/20230102101010.jpg")
	newest := put(t, root, "2023/01/02/20230102121212.jpg")
	// Newer directory without frames is skipped.
	put(t, root, "2023/01/05/notes.txt")

	f, err := Latest(root, utc1)
	require.NoError(t, err)
	assert.Equal(t, newest, f.Path)
	assert.Equal(t, time.Date(2023, 1, 2, 12, 12, 12, 0, utc1), f.Taken)

	_, err = Latest(t.TempDir(), utc1)
	assert.ErrorIs(t, err, ErrNoFrames)
}
