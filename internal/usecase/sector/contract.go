package sector

import "github.com/kailas-cloud/grantdex/internal/domain"

// Completer is the model used to classify queries. Nil means no AI is configured.
type Completer = domain.Completer
