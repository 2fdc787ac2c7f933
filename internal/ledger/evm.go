package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// VerbyteABI covers the room functions of the on-chain game contract.
const VerbyteABI = `[
	{"type":"function","name":"createGame","stateMutability":"nonpayable",
	 "inputs":[{"name":"roomId","type":"string"},{"name":"word","type":"string"}],"outputs":[]},
	{"type":"function","name":"joinGame","stateMutability":"nonpayable",
	 "inputs":[{"name":"roomId","type":"string"}],"outputs":[]},
	{"type":"function","name":"games","stateMutability":"view",
	 "inputs":[{"name":"roomId","type":"string"}],
	 "outputs":[{"name":"host","type":"address"},{"name":"guest","type":"address"},{"name":"word","type":"string"}]},
	{"type":"event","name":"PlayerJoined","anonymous":false,
	 "inputs":[{"name":"roomId","type":"string","indexed":false},{"name":"player","type":"address","indexed":false}]}
]`

// BaseChainID is Base mainnet.
const BaseChainID = 8453

var ErrTxReverted = errors.New("transaction reverted")

// victoryProof is the calldata of the zero-value self-transaction that
// commits a win.
var victoryProof = []byte("VERBYTE VICTORY")

type EVMBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type EVMConfig struct {
	RPCURL     string
	Contract   string
	PrivateKey string
	ChainID    int64
}

// EVM talks to the game contract. It signs with a single key, so it can only
// act for that key's address.
type EVM struct {
	contract *bind.BoundContract
	backend  EVMBackend
	auth     *bind.TransactOpts
	log      *zap.Logger
}

func DialEVM(ctx context.Context, cfg EVMConfig, log *zap.Logger) (*EVM, error) {
	if !common.IsHexAddress(cfg.Contract) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.Contract)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	chainID := cfg.ChainID
	if chainID == 0 {
		chainID = BaseChainID
	}
	return NewEVM(client, common.HexToAddress(cfg.Contract), key, big.NewInt(chainID), log)
}

func NewEVM(backend EVMBackend, address common.Address, key *ecdsa.PrivateKey, chainID *big.Int, log *zap.Logger) (*EVM, error) {
	parsed, err := abi.JSON(strings.NewReader(VerbyteABI))
	if err != nil {
		return nil, err
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EVM{
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		backend:  backend,
		auth:     auth,
		log:      log,
	}, nil
}

// Account is the address transactions are sent from.
func (e *EVM) Account() string {
	return e.auth.From.Hex()
}

func (e *EVM) CreateGame(ctx context.Context, host, code, word string) error {
	if !SameAccount(host, e.Account()) {
		return ErrAccountMismatch
	}
	if word == "" {
		return ErrMissingWord
	}

	if _, err := e.Game(ctx, code); err == nil {
		return ErrRoomExists
	} else if !errors.Is(err, ErrRoomNotFound) {
		return err
	}

	return e.transact(ctx, "createGame", code, word)
}

func (e *EVM) JoinGame(ctx context.Context, guest, code string) (Room, error) {
	if !SameAccount(guest, e.Account()) {
		return Room{}, ErrAccountMismatch
	}

	r, err := e.Game(ctx, code)
	if err != nil {
		return Room{}, err
	}
	if err := checkJoin(r, guest); err != nil {
		return Room{}, err
	}
	if r.HasGuest() {
		return r, nil
	}

	if err := e.transact(ctx, "joinGame", code); err != nil {
		return Room{}, err
	}
	return e.Game(ctx, code)
}

func (e *EVM) transact(ctx context.Context, method string, params ...any) error {
	opts := *e.auth
	opts.Context = ctx

	tx, err := e.contract.Transact(&opts, method, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	e.log.Info("ledger transaction sent", zap.String("method", method), zap.String("tx", tx.Hash().Hex()))

	receipt, err := bind.WaitMined(ctx, e.backend, tx)
	if err != nil {
		return fmt.Errorf("%s: wait mined: %w", method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%s: %w", method, ErrTxReverted)
	}
	return nil
}

// CommitVictory sends a zero-value transaction to the signer's own address
// carrying the victory proof and returns its hash once mined.
func (e *EVM) CommitVictory(ctx context.Context, account, code string) (string, error) {
	if !SameAccount(account, e.Account()) {
		return "", ErrAccountMismatch
	}
	from := e.auth.From

	nonce, err := e.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("victory: nonce: %w", err)
	}
	gasPrice, err := e.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("victory: gas price: %w", err)
	}
	gas, err := e.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &from, Data: victoryProof})
	if err != nil {
		return "", fmt.Errorf("victory: estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &from,
		Value:    big.NewInt(0),
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     victoryProof,
	})
	signed, err := e.auth.Signer(from, tx)
	if err != nil {
		return "", fmt.Errorf("victory: sign: %w", err)
	}
	if err := e.backend.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("victory: send: %w", err)
	}
	e.log.Info("victory transaction sent", zap.String("room", code), zap.String("tx", signed.Hash().Hex()))

	receipt, err := bind.WaitMined(ctx, e.backend, signed)
	if err != nil {
		return "", fmt.Errorf("victory: wait mined: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("victory: %w", ErrTxReverted)
	}
	return signed.Hash().Hex(), nil
}

func (e *EVM) Game(ctx context.Context, code string) (Room, error) {
	var out []any
	if err := e.contract.Call(&bind.CallOpts{Context: ctx}, &out, "games", code); err != nil {
		return Room{}, fmt.Errorf("read room: %w", err)
	}
	if len(out) != 3 {
		return Room{}, fmt.Errorf("read room: unexpected output length %d", len(out))
	}

	host := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	guest := *abi.ConvertType(out[1], new(common.Address)).(*common.Address)
	word := *abi.ConvertType(out[2], new(string)).(*string)

	if host == (common.Address{}) {
		return Room{}, ErrRoomNotFound
	}
	r := Room{Code: code, Host: host.Hex(), Word: word}
	if guest != (common.Address{}) {
		r.Guest = guest.Hex()
	}
	return r, nil
}

type playerJoinedLog struct {
	RoomID string         `abi:"roomId"`
	Player common.Address `abi:"player"`
}

func (e *EVM) SubscribeJoins(ctx context.Context, code string) (<-chan PlayerJoined, error) {
	logs, sub, err := e.contract.WatchLogs(&bind.WatchOpts{Context: ctx}, "PlayerJoined")
	if err != nil {
		return nil, fmt.Errorf("watch joins: %w", err)
	}

	out := make(chan PlayerJoined, 4)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				if err != nil {
					e.log.Warn("join subscription ended", zap.String("room", code), zap.Error(err))
				}
				return
			case l := <-logs:
				var ev playerJoinedLog
				if err := e.contract.UnpackLog(&ev, "PlayerJoined", l); err != nil {
					e.log.Warn("undecodable join log", zap.Error(err))
					continue
				}
				if ev.RoomID != code {
					continue
				}
				select {
				case out <- PlayerJoined{RoomCode: code, Player: ev.Player.Hex()}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
