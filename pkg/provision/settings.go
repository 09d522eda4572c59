package provision

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/devcraft/storekeep/pkg/backup"
	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/tidwall/jsonc"
)

// MergeSettings writes overrides into the settings file at path and returns
// the keys whose value changed. The file may contain comments and trailing
// commas; it is backed up before being rewritten as plain JSON. A file that
// does not parse is left untouched. A missing file is created.
func MergeSettings(fs types.FS, backups *backup.Manager, path string, overrides map[string]interface{}) ([]string, error) {
	settings := map[string]interface{}{}
	existed := true

	data, err := fs.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		existed = false
	case err != nil:
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path).WithDetail("path", path)
	case len(bytes.TrimSpace(data)) > 0:
		if err := json.Unmarshal(jsonc.ToJSON(data), &settings); err != nil {
			return nil, errors.Wrapf(err, errors.ErrSettingsParse, "%s is not valid JSON", path).WithDetail("path", path)
		}
		if settings == nil {
			settings = map[string]interface{}{}
		}
	}

	normalized, err := normalize(overrides)
	if err != nil {
		return nil, err
	}

	var changed []string
	for k, v := range normalized {
		if cur, ok := settings[k]; ok && reflect.DeepEqual(cur, v) {
			continue
		}
		settings[k] = v
		changed = append(changed, k)
	}
	sort.Strings(changed)

	if len(changed) == 0 && existed {
		return nil, nil
	}

	if existed {
		if _, err := backups.Backup(path); err != nil {
			return nil, err
		}
	} else if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(path))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(settings); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode settings")
	}

	tmp := path + ".tmp"
	if err := fs.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", tmp)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", path)
	}
	return changed, nil
}

// normalize round-trips values through JSON so they compare equal to what
// a settings file decodes into (numbers become float64 and so on).
func normalize(in map[string]interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "settings overrides are not JSON-compatible")
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot normalize settings overrides")
	}
	return out, nil
}
