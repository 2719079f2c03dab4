package noise

// zero overwrites b in place. Used for key material on Destroy(); not relied
// upon to defeat a sufficiently aggressive compiler, but it is what every
// secret-holding type in this package calls before letting its buffers go,
// per spec section 9's zeroization note.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
