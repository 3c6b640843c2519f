package bucketsweep

import (
	"fmt"

	"github.com/bucketsweep/bucketsweep/config"
	"github.com/bucketsweep/bucketsweep/errors"
	"github.com/bucketsweep/bucketsweep/provider"
	"github.com/bucketsweep/bucketsweep/provider/aliyun"
	"github.com/bucketsweep/bucketsweep/provider/tencent"
)

// NewProvider creates the named storage provider with credentials read
// from the environment. rateLimit is the request budget in requests
// per second shared by all calls the provider makes.
func NewProvider(name string, rateLimit int) (provider.StorageProvider, error) {
	switch name {
	case aliyun.Name:
		cfg, err := config.AliyunFromEnv()
		if err != nil {
			return nil, err
		}
		return aliyun.New(cfg, rateLimit)
	case tencent.Name:
		cfg, err := config.TencentFromEnv()
		if err != nil {
			return nil, err
		}
		return tencent.New(cfg, rateLimit)
	default:
		return nil, errors.NewError("newProvider", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("unknown provider %q, want %q or %q", name, aliyun.Name, tencent.Name))
	}
}
