package signer

import "github.com/foxy/foxy-go/pkg/foxyerr"

var (
	// ErrNoSecret is returned by every signing operation until a secret is set.
	ErrNoSecret = foxyerr.ErrConfiguration.New("no secret was provided to build the hmac")

	// ErrMultipleCodes is returned for a form holding more than one unprefixed code field.
	ErrMultipleCodes = foxyerr.ErrSigningAmbiguity.New("there are multiple codes in the form element. " +
		"Please, check https://wiki.foxycart.com/v/2.0/hmac_validation#multiple_products_in_one_form")

	ErrInvalidURL      = foxyerr.ErrInvalidURL.New("unable to sign url")
	ErrInvalidDocument = foxyerr.ErrConfiguration.New("unable to sign document")
	ErrBinaryDocument  = ErrInvalidDocument.New("input is not an HTML document")
	ErrReadDocument    = ErrInvalidDocument.New("unable to read document")
	ErrWriteDocument   = ErrInvalidDocument.New("unable to write signed document")
)
