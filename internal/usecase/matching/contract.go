package matching

import "github.com/kailas-cloud/grantdex/internal/domain"

// Completer ranks grants. Nil means no AI is configured and every call degrades.
type Completer = domain.Completer
