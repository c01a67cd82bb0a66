package composer_test

import (
	"fmt"

	"github.com/cwbudde/algo-acid/modules/composer"
)

func ExampleParse() {
	p, err := composer.Parse(composer.Score{
		Header:      "A 4 +0",
		Notes:       "C D#  G ",
		Octave:      " U  ",
		SlideAccent: "A   S   ",
		Time:        "oo_o",
	})
	if err != nil {
		panic(err)
	}

	for i := range p.Length {
		fmt.Printf("step %d: cv=%+.3f %s\n", i+1, p.CV(i), p.Attributes[i])
	}
	// Output:
	// step 1: cv=+0.000 GA..
	// step 2: cv=+1.250 G...
	// step 3: cv=+0.000 ...T
	// step 4: cv=+0.583 G...
}

func ExampleFormat() {
	p, err := composer.Parse(composer.Score{Header: "G 3 -12", Notes: "DbE F ", Time: "o_-"})
	if err != nil {
		panic(err)
	}

	s := composer.Format(p)
	fmt.Printf("%q %q %q\n", s.Header, s.Notes[:6], s.Time[:3])
	// Output: "G 3 -12" "C#E F " "o_-"
}
