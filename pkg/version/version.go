package version

// GitVersion is overwritten at build time with -ldflags "-X compass_apiserver/pkg/version.GitVersion=...".
var GitVersion = "v0.0.0-dev"
