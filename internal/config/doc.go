// Package config provides the ipsv settings file.
//
// Settings live in a YAML file (default /etc/ipsv/ipsv.yml). Loading is
// forgiving: a missing file yields defaults, and the IPSV_LICENSE_URL and
// IPSV_DATA_DIR environment variables override the file, so a dev box can
// point at a different license without editing system config.
package config
