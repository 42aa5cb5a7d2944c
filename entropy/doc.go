// Package entropy turns single noisy bits into small bounded integers.
//
// A BitSource is drawn 16 times into an accumulator (first draw in bit 0) and
// the accumulator is folded into [0, 10000) with a plain modulo. The fold is
// biased: values below 5536 come up 7 times in 65536, the rest 6 times. Model
// describes that distribution exactly so captures can be checked against it.
package entropy
