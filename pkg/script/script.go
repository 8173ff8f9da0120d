package script

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/afero"

	"github.com/oxidize/mongo-init/pkg/user"
)

const (
	ScriptFileName = "init-mongo.js"
	DefaultInitDir = "/docker-entrypoint-initdb.d"
	// Read by the image entrypoint after it drops to the mongodb user.
	scriptFileMode os.FileMode = 0o644
)

type ScriptFile struct {
	req *user.Request
}

func NewScriptFile(req *user.Request) *ScriptFile {
	return &ScriptFile{
		req: req,
	}
}

// Marshal renders a mongosh script equivalent to the createUser command.
func (s *ScriptFile) Marshal() ([]byte, error) {
	tpl := createTpl("init-mongo", `// Creates the application user of "{{ js .Database }}".
db.getSiblingDB("{{ js .Database }}").createUser({
  user: "{{ js .Username }}",
  pwd: "{{ js .Password }}",
  roles: [
{{- range $i, $role := .Roles }}{{ if $i }},{{ end }}
    { role: "{{ js $role.Name }}", db: "{{ js $role.Database }}" }
{{- end }}
  ]
})
`)
	buf := new(bytes.Buffer)
	if err := tpl.Execute(buf, s.req); err != nil {
		return nil, fmt.Errorf("error rendering init script: %v", err)
	}
	return buf.Bytes(), nil
}

// Write renders the script into dir and returns the file path.
func (s *ScriptFile) Write(fs afero.Fs, dir string) (string, error) {
	bytes, err := s.Marshal()
	if err != nil {
		return "", err
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating directory '%s': %v", dir, err)
	}
	path := filepath.Join(dir, ScriptFileName)
	if err := afero.WriteFile(fs, path, bytes, scriptFileMode); err != nil {
		return "", fmt.Errorf("error writing init script '%s': %v", path, err)
	}
	return path, nil
}

func createTpl(name, t string) *template.Template {
	return template.Must(template.New(name).Parse(t))
}
