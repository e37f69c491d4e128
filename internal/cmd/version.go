package cmd

// Version is reported by ping and --version. Release builds set it with
// -ldflags "-X github.com/Alia5/flightstick/internal/cmd.Version=...".
var Version = "dev"
