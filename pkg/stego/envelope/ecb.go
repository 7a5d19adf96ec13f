package envelope

import "crypto/cipher"

// ecb encrypts or decrypts each block independently. crypto/cipher has no
// ECB mode, so this fills the cipher.BlockMode interface directly.
type ecb struct {
	b       cipher.Block
	decrypt bool
}

func newECBEncrypter(b cipher.Block) cipher.BlockMode { return &ecb{b: b} }

func newECBDecrypter(b cipher.Block) cipher.BlockMode { return &ecb{b: b, decrypt: true} }

func (x *ecb) BlockSize() int { return x.b.BlockSize() }

func (x *ecb) CryptBlocks(dst, src []byte) {
	bs := x.b.BlockSize()
	if len(src)%bs != 0 {
		panic("envelope: input not full blocks")
	}
	if len(dst) < len(src) {
		panic("envelope: output smaller than input")
	}
	for len(src) > 0 {
		if x.decrypt {
			x.b.Decrypt(dst[:bs], src[:bs])
		} else {
			x.b.Encrypt(dst[:bs], src[:bs])
		}
		src = src[bs:]
		dst = dst[bs:]
	}
}
