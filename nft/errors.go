package nft

import "errors"

var (
	ErrTooManyAssets = errors.New("TooManyAssets")
	ErrTooManyOwned  = errors.New("TooManyOwned")

	ErrDuplicateAsset = errors.New("DuplicateAsset")
	ErrNoSuchAsset    = errors.New("NoSuchAsset")

	ErrNotOwner = errors.New("NotOwner")

	ErrTransferToSelf = errors.New("TransferToSelf")
	ErrNotForSale     = errors.New("NotForSale")
	ErrMaxPriceTooLow = errors.New("MaxPriceTooLow")

	ErrUnknownCall = errors.New("UnknownCall")

	// returned by the Ledger when the payer cannot afford the amount
	ErrInsufficientBalance = errors.New("InsufficientBalance")
	ErrBalanceOverflow     = errors.New("BalanceOverflow")
)

var dispatchErrors = []error{
	ErrTooManyAssets,
	ErrTooManyOwned,
	ErrDuplicateAsset,
	ErrNoSuchAsset,
	ErrNotOwner,
	ErrTransferToSelf,
	ErrNotForSale,
	ErrMaxPriceTooLow,
	ErrUnknownCall,
	ErrInsufficientBalance,
	ErrBalanceOverflow,
}

// ErrorKind returns the caller facing name of a rejected call, or an empty
// string if err is not a rejection but a failure of the host itself.
func ErrorKind(err error) string {
	for _, e := range dispatchErrors {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return ""
}
