package format_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/codec"
	"github.com/san-kum/asciimate/internal/format"
)

var _ = Describe("binary stream", func() {
	var a *anim.Animation

	BeforeEach(func() {
		enc := codec.NewEncoder(anim.Meta{Cols: 3, Rows: 3, FPS: 24, Ramp: []byte(" .#")}, codec.DefaultPolicy)
		for _, s := range []string{".........", "........#", "........#", "#########"} {
			_, err := enc.Add(anim.Grid{Symbols: []byte(s)})
			Expect(err).NotTo(HaveOccurred())
		}
		a = enc.Animation()
	})

	It("starts with the ASCI magic and a 32 byte header", func() {
		b, err := format.Marshal(a)
		Expect(err).NotTo(HaveOccurred())
		Expect(b[:4]).To(Equal([]byte("ASCI")))
		Expect(b[format.HeaderSize : format.HeaderSize+3]).To(Equal([]byte(" .#")))
	})

	It("round-trips every record", func() {
		b, err := format.Marshal(a)
		Expect(err).NotTo(HaveOccurred())

		got, err := format.Unmarshal(b)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Meta.FrameCount).To(Equal(uint16(4)))
		Expect(got.Frames).To(HaveLen(4))
		for i := range a.Frames {
			Expect(anim.Kind(got.Frames[i])).To(Equal(anim.Kind(a.Frames[i])))
		}
	})

	It("keeps an empty delta for an unchanged frame", func() {
		Expect(a.Frames[2]).To(BeAssignableToTypeOf(&anim.Delta{}))
		Expect(a.Frames[2].(*anim.Delta).Changes).To(BeEmpty())
	})

	DescribeTable("rejects malformed input",
		func(mangle func([]byte) []byte, want error) {
			b, err := format.Marshal(a)
			Expect(err).NotTo(HaveOccurred())
			got, err := format.Unmarshal(mangle(b))
			Expect(err).To(MatchError(want))
			Expect(got).To(BeNil())
		},
		Entry("foreign magic", func(b []byte) []byte { return append([]byte("PNG!"), b[4:]...) }, anim.ErrBadMagic),
		Entry("missing last byte", func(b []byte) []byte { return b[:len(b)-1] }, anim.ErrTruncatedStream),
		Entry("extra byte", func(b []byte) []byte { return append(b, 0) }, format.ErrTrailingData),
	)

	Describe("format dispatch", func() {
		It("detects each encoding", func() {
			for _, f := range []format.Format{format.Binary, format.JSON, format.YAML} {
				data, err := format.Encode(f, a)
				Expect(err).NotTo(HaveOccurred())
				Expect(format.Detect(data)).To(Equal(f))

				got, err := format.Decode(f, data)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Meta.Ramp).To(Equal(a.Meta.Ramp))
			}
		})

		It("refuses unknown formats", func() {
			_, err := format.Decode(format.Unknown, []byte("{}"))
			Expect(err).To(MatchError(anim.ErrUnsupportedFormat))
		})
	})

	It("writes the same bytes through Write as through Marshal", func() {
		var buf bytes.Buffer
		_, err := format.Write(&buf, a)
		Expect(err).NotTo(HaveOccurred())
		b, _ := format.Marshal(a)
		Expect(buf.Bytes()).To(Equal(b))
	})
})
