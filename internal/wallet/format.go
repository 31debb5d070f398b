package wallet

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// EtherDecimals wei -> ether 的小数位
const EtherDecimals = 18

// FormatEther 把 wei 转成可读的 ether 字符串（去掉末尾 0），nil 视为 0
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).String()
}
