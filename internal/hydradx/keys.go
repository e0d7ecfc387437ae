// internal/hydradx/keys.go
package hydradx

import (
	"github.com/holiman/uint256"

	"github.com/rovshanmuradov/hydra-snapshot/internal/blockchain/substrate"
)

var (
	tokensAccountsPrefix    = substrate.StoragePrefix("Tokens", "Accounts")
	dcaSchedulesPrefix      = substrate.StoragePrefix("DCA", "Schedules")
	omnipoolAssetsPrefix    = substrate.StoragePrefix("Omnipool", "Assets")
	omnipoolPositionsPrefix = substrate.StoragePrefix("Omnipool", "Positions")
	uniquesAssetPrefix      = substrate.StoragePrefix("Uniques", "Asset")
)

const (
	prefixLen     = 32
	blake2Len     = 16
	twox64Len     = 8
	assetIDLen    = 4
	collectionLen = 16
)

// Tokens.Accounts: Blake2_128Concat(AccountId) ++ Twox64Concat(AssetId)
func tokenAccountKey(account substrate.AccountID, assetID uint32) []byte {
	return substrate.StorageKey(tokensAccountsPrefix,
		substrate.Blake2_128Concat(account[:]),
		substrate.Twox64Concat(substrate.EncodeU32(assetID)))
}

// Omnipool.Assets: Blake2_128Concat(AssetId)
func omnipoolAssetKey(assetID uint32) []byte {
	return substrate.StorageKey(omnipoolAssetsPrefix,
		substrate.Blake2_128Concat(substrate.EncodeU32(assetID)))
}

// Uniques.Asset first key: Blake2_128Concat(CollectionId)
func collectionItemsPrefix(collectionID *uint256.Int) []byte {
	return substrate.StorageKey(uniquesAssetPrefix,
		substrate.Blake2_128Concat(substrate.EncodeU128(collectionID)))
}
