package test

// SampleConfigYAML returns a complete configuration file.
func SampleConfigYAML() string {
	return `app-name: deploy
logging:
  dir: /var/log/deploy
  max-files: 3
  level: debug
  timestamp-format: "15:04:05"
  filename-prefix: deploy-
runner:
  working-dir: /srv/app
  ssh-credentials: deploy@web1 -p 2222
`
}

// BaseConfigYAML returns a configuration meant to be included by others.
func BaseConfigYAML() string {
	return `app-name: base
logging:
  dir: /var/log/base
  level: warning
runner:
  ssh-credentials: ops@bastion
`
}

// HostConfigYAML returns a configuration that includes base.yaml.
func HostConfigYAML() string {
	return `includes:
  - base.yaml
app-name: web1
logging:
  max-files: 2
`
}
