package dashboard

import "embed"

// assetsFS holds the static assets served under /static/.
//
//go:embed static
var assetsFS embed.FS
