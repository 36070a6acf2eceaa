package provision

import (
	"strings"
	"text/template"
)

// fpmPoolTemplate is the php-fpm pool written for the IPS sites. The
// default www pool is removed during setup and replaced with this one.
const fpmPoolTemplate = `[ips]
user = {{ .User }}
group = {{ .Group }}
listen = {{ .Listen }}
listen.owner = {{ .User }}
listen.group = {{ .Group }}
listen.mode = 0660

pm = dynamic
pm.max_children = {{ .MaxChildren }}
pm.start_servers = 2
pm.min_spare_servers = 1
pm.max_spare_servers = 3

chdir = /
php_admin_value[upload_max_filesize] = 1G
php_admin_value[post_max_size] = 1G
`

// FpmPool holds the values rendered into the php-fpm pool config.
type FpmPool struct {
	User        string
	Group       string
	Listen      string
	MaxChildren int
}

// DefaultFpmPool returns the pool settings used on the dev box.
func DefaultFpmPool() FpmPool {
	return FpmPool{
		User:        "www-data",
		Group:       "www-data",
		Listen:      "/var/run/php5-fpm-ips.sock",
		MaxChildren: 5,
	}
}

// Render produces the pool config file body.
func (p FpmPool) Render() (string, error) {
	tpl, err := template.New("fpm-pool").Parse(fpmPoolTemplate)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := tpl.Execute(&b, p); err != nil {
		return "", err
	}
	return b.String(), nil
}
