package config

import "github.com/foxy/foxy-go/pkg/foxyerr"

var (
	ErrInvalidConfig     = foxyerr.ErrConfiguration.New("invalid configuration")
	ErrReadConfig        = foxyerr.ErrConfiguration.New("unable to read configuration")
	ErrParseConfig       = foxyerr.ErrConfiguration.New("unable to parse configuration")
	ErrUnsupportedFormat = foxyerr.ErrConfiguration.New("unsupported configuration format")
)
