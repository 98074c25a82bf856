package block

import (
	"sort"

	"github.com/holiman/uint256"
)

// AccountID, NftID, FoundryID and TokenID are opaque fixed-size
// identifiers for their respective ledger entities. Native-token amounts
// use uint256.Int, the fixed-width 256-bit type the spec's own TokenId
// -> u256 amount shape calls for, rather than math/big's arbitrary
// precision; see DESIGN.md.
type (
	AccountID [IDSize]byte
	NftID     [IDSize]byte
	FoundryID [IDSize]byte
	TokenID   [IDSize]byte
)

// NativeTokenBalance pairs a TokenID with an amount to burn. Burn keeps
// its tokens in a map and builds a TokenID-sorted slice of these on each
// NativeTokens call.
type NativeTokenBalance struct {
	TokenID TokenID
	Amount  *uint256.Int
}

// Burn is a directive set of things a transaction must destroy. The zero
// value represents "burn nothing"; policy is driven entirely by set and
// map membership, never by insertion order.
type Burn struct {
	accounts  map[AccountID]struct{}
	nfts      map[NftID]struct{}
	foundries map[FoundryID]struct{}
	tokens    map[TokenID]*uint256.Int
}

// NewBurn returns an empty Burn directive.
func NewBurn() *Burn {
	return &Burn{
		accounts:  make(map[AccountID]struct{}),
		nfts:      make(map[NftID]struct{}),
		foundries: make(map[FoundryID]struct{}),
		tokens:    make(map[TokenID]*uint256.Int),
	}
}

// AddAccount marks accountID to be burned and returns the receiver for
// chaining.
func (b *Burn) AddAccount(id AccountID) *Burn {
	b.accounts[id] = struct{}{}
	return b
}

// Accounts returns the set of account ids to burn.
func (b *Burn) Accounts() map[AccountID]struct{} { return b.accounts }

// AddNft marks nftID to be burned and returns the receiver for chaining.
func (b *Burn) AddNft(id NftID) *Burn {
	b.nfts[id] = struct{}{}
	return b
}

// Nfts returns the set of NFT ids to burn.
func (b *Burn) Nfts() map[NftID]struct{} { return b.nfts }

// AddFoundry marks foundryID to be burned and returns the receiver for
// chaining.
func (b *Burn) AddFoundry(id FoundryID) *Burn {
	b.foundries[id] = struct{}{}
	return b
}

// Foundries returns the set of foundry ids to burn.
func (b *Burn) Foundries() map[FoundryID]struct{} { return b.foundries }

// AddNativeToken sets the amount of tokenID to burn and returns the
// receiver for chaining.
func (b *Burn) AddNativeToken(tokenID TokenID, amount *uint256.Int) *Burn {
	b.tokens[tokenID] = amount
	return b
}

// NativeTokens returns the tokens to burn ordered by TokenID, so callers
// get a stable iteration order without depending on map order.
func (b *Burn) NativeTokens() []NativeTokenBalance {
	out := make([]NativeTokenBalance, 0, len(b.tokens))
	for id, amt := range b.tokens {
		out = append(out, NativeTokenBalance{TokenID: id, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i].TokenID[:]) < string(out[j].TokenID[:])
	})
	return out
}

// IsEmpty reports whether no burn was requested at all.
func (b *Burn) IsEmpty() bool {
	return len(b.accounts) == 0 && len(b.nfts) == 0 &&
		len(b.foundries) == 0 && len(b.tokens) == 0
}

// BurnDto is the wire representation of a Burn. Its slice fields are
// tagged omitempty, so a nil field and a non-nil empty one encode the
// same way: the wire form does not distinguish "no burn requested" from
// "burn requested with an empty set".
type BurnDto struct {
	Accounts     []AccountID            `json:"accounts,omitempty"`
	Nfts         []NftID                `json:"nfts,omitempty"`
	Foundries    []FoundryID            `json:"foundries,omitempty"`
	NativeTokens []NativeTokenBalanceDto `json:"nativeTokens,omitempty"`
}

// NativeTokenBalanceDto is the wire representation of a NativeTokenBalance.
type NativeTokenBalanceDto struct {
	TokenID TokenID      `json:"tokenId"`
	Amount  *uint256.Int `json:"amount"`
}

// ToDto converts b to its wire representation, with ids and tokens
// sorted by id. Every category b holds nothing in is left nil; ToDto
// never produces a non-nil empty field.
func (b *Burn) ToDto() *BurnDto {
	dto := &BurnDto{}
	if len(b.accounts) > 0 {
		dto.Accounts = make([]AccountID, 0, len(b.accounts))
		for id := range b.accounts {
			dto.Accounts = append(dto.Accounts, id)
		}
		sort.Slice(dto.Accounts, func(i, j int) bool {
			return string(dto.Accounts[i][:]) < string(dto.Accounts[j][:])
		})
	}
	if len(b.nfts) > 0 {
		dto.Nfts = make([]NftID, 0, len(b.nfts))
		for id := range b.nfts {
			dto.Nfts = append(dto.Nfts, id)
		}
		sort.Slice(dto.Nfts, func(i, j int) bool {
			return string(dto.Nfts[i][:]) < string(dto.Nfts[j][:])
		})
	}
	if len(b.foundries) > 0 {
		dto.Foundries = make([]FoundryID, 0, len(b.foundries))
		for id := range b.foundries {
			dto.Foundries = append(dto.Foundries, id)
		}
		sort.Slice(dto.Foundries, func(i, j int) bool {
			return string(dto.Foundries[i][:]) < string(dto.Foundries[j][:])
		})
	}
	if len(b.tokens) > 0 {
		for _, nt := range b.NativeTokens() {
			dto.NativeTokens = append(dto.NativeTokens, NativeTokenBalanceDto{
				TokenID: nt.TokenID,
				Amount:  nt.Amount,
			})
		}
	}
	return dto
}

// BurnFromDto rebuilds a Burn from its wire representation. A nil field
// and an empty one both become an empty set on the in-memory Burn, since
// Burn has no "absent" state of its own.
func BurnFromDto(dto *BurnDto) *Burn {
	b := NewBurn()
	for _, id := range dto.Accounts {
		b.AddAccount(id)
	}
	for _, id := range dto.Nfts {
		b.AddNft(id)
	}
	for _, id := range dto.Foundries {
		b.AddFoundry(id)
	}
	for _, nt := range dto.NativeTokens {
		b.AddNativeToken(nt.TokenID, nt.Amount)
	}
	return b
}
